package models

import "time"

// EntryType enumerates the kinds of entries a world can contain.
// The type is fixed at creation and never changes.
type EntryType string

const (
	EntryTypeCharacter EntryType = "character"
	EntryTypeLocation  EntryType = "location"
	EntryTypeItem      EntryType = "item"
	EntryTypeFaction   EntryType = "faction"
	EntryTypeCustom    EntryType = "custom"
)

// EntryTypes lists every valid entry type in display order.
var EntryTypes = []EntryType{
	EntryTypeCharacter,
	EntryTypeLocation,
	EntryTypeItem,
	EntryTypeFaction,
	EntryTypeCustom,
}

// ValidEntryType reports whether t is one of the fixed enumeration.
func ValidEntryType(t EntryType) bool {
	for _, v := range EntryTypes {
		if v == t {
			return true
		}
	}
	return false
}

// FieldType enumerates the value kinds a metadata field can hold.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeTags     FieldType = "tags"
)

// MetadataField is a named, typed attribute attached to an entry. It is a
// value object serialized inside the entry's metadata column, not a row of
// its own. Default fields (IsDefault) are seeded at creation and cannot be
// removed by the user; user-defined fields can.
type MetadataField struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      FieldType `json:"type"`
	Options   []string  `json:"options,omitempty"`
	Value     any       `json:"value"`
	IsDefault bool      `json:"isDefault"`
}

// Entry is a typed content item inside one world.
type Entry struct {
	ID            string          `json:"id"`
	WorldID       string          `json:"worldId"`
	Type          EntryType       `json:"type"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Content       string          `json:"content"`
	Metadata      []MetadataField `json:"metadata"`
	CoverImageURL string          `json:"coverImageUrl"`
	DeletedAt     *time.Time      `json:"-"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// EntrySummary is the projection returned by list and link-search queries;
// content and metadata stay server-side until the entry is opened.
type EntrySummary struct {
	ID            string    `json:"id"`
	WorldID       string    `json:"worldId"`
	Type          EntryType `json:"type"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	CoverImageURL string    `json:"coverImageUrl"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// EntryRef is the minimal projection used by relationship endpoints and
// link autocomplete.
type EntryRef struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Type  EntryType `json:"type"`
}

// defaultFieldSpec describes one seeded metadata field for an entry type.
type defaultFieldSpec struct {
	name    string
	ftype   FieldType
	options []string
}

// defaultMetadata maps each entry type to its seeded field list. This table
// is static configuration; the seeded names must match it exactly.
var defaultMetadata = map[EntryType][]defaultFieldSpec{
	EntryTypeCharacter: {
		{name: "Age", ftype: FieldTypeText},
		{name: "Species", ftype: FieldTypeText},
		{name: "Status", ftype: FieldTypeText},
	},
	EntryTypeLocation: {
		{name: "Region", ftype: FieldTypeText},
		{name: "Climate", ftype: FieldTypeText},
		{name: "Population", ftype: FieldTypeText},
	},
	EntryTypeItem: {
		{name: "Rarity", ftype: FieldTypeText},
		{name: "Origin", ftype: FieldTypeText},
	},
	EntryTypeFaction: {
		{name: "Alignment", ftype: FieldTypeText},
		{name: "Leader", ftype: FieldTypeText},
	},
	EntryTypeCustom: {
		{name: "Notes", ftype: FieldTypeText},
	},
}

// DefaultMetadataFields returns the seeded metadata for a new entry of type
// t, with fresh field IDs and empty values. newID supplies identifiers so
// callers control ID generation (and tests can pin it).
func DefaultMetadataFields(t EntryType, newID func() string) []MetadataField {
	specs := defaultMetadata[t]
	fields := make([]MetadataField, 0, len(specs))
	for _, s := range specs {
		fields = append(fields, MetadataField{
			ID:        newID(),
			Name:      s.name,
			Type:      s.ftype,
			Options:   s.options,
			Value:     "",
			IsDefault: true,
		})
	}
	return fields
}
