// Package extract turns raw tab-delimited event records into validated
// (location, subject) composite keys.
package extract

import "strings"

// NA marks a field that is absent or unusable. It is distinct from an
// empty value: a record with too few fields yields NA, never "".
const NA = "NA"

const (
	// GDELT event export column positions.
	subjectIndex  = 6
	locationIndex = 21
	minFields     = locationIndex + 2
)

// Fields holds the two codes pulled out of one record, before validation.
type Fields struct {
	Location string
	Subject  string
}

// Key is a validated (location, subject) pair used as a counting key.
type Key struct {
	Location string
	Subject  string
}

// ExtractFields splits a record on runs of tabs and pulls out the location
// and subject codes. Records with fewer than 23 fields produce NA for both
// codes; no error is ever returned for malformed input.
//
// A location longer than two characters is truncated to its first character:
// the source dataset uses the first character of a multi-character location
// field as the coarse region code.
func ExtractFields(record string) Fields {
	fields := strings.FieldsFunc(record, isTab)
	if len(fields) < minFields {
		return Fields{Location: NA, Subject: NA}
	}

	location := fields[locationIndex]
	if len(location) > 2 {
		location = location[:1]
	}

	subject := fields[subjectIndex]
	if subject == "" {
		subject = NA
	}

	return Fields{Location: location, Subject: subject}
}

func isTab(r rune) bool { return r == '\t' }

// BuildKey validates the extracted codes and combines them into a composite
// key. The second return value is false when the record must be excluded
// from counting: either code is NA, the location is not exactly two
// characters, or the location carries a "-" prefix.
func BuildKey(f Fields) (Key, bool) {
	if f.Location == NA || f.Subject == NA {
		return Key{}, false
	}
	if len(f.Location) != 2 || strings.HasPrefix(f.Location, "-") {
		return Key{}, false
	}
	return Key{Location: f.Location, Subject: f.Subject}, true
}

// KeyFromRecord is the full extraction + validation path for one record.
func KeyFromRecord(record string) (Key, bool) {
	return BuildKey(ExtractFields(record))
}

// String returns the canonical grouping token, "<location>_<subject>".
func (k Key) String() string {
	return k.Location + "_" + k.Subject
}

// ParseKey splits a canonical grouping token on its first underscore.
// The location code itself never contains an underscore, so the split is
// unambiguous even when the subject does.
func ParseKey(s string) (Key, bool) {
	location, subject, found := strings.Cut(s, "_")
	if !found || location == "" || subject == "" {
		return Key{}, false
	}
	return Key{Location: location, Subject: subject}, true
}
