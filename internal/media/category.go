// Package media implements the contract image attachment pipeline: slug-based
// filenames, base64 and multipart submission channels, stored-path
// normalization, and per-category count limits.
package media

// Category identifies a media folder under the media root.
type Category string

const (
	CategoryPassport          Category = "passport_image"
	CategoryVisa              Category = "visa_image"
	CategoryCompletedContract Category = "completed_contract_image"
	CategoryLeadAudio         Category = "lead_audio"
)

// PerRequestLimit is the maximum number of new files a single request may
// submit for the category.
func (c Category) PerRequestLimit() int {
	switch c {
	case CategoryPassport:
		return 1
	case CategoryVisa:
		return 1
	case CategoryCompletedContract:
		return 3
	default:
		return 1
	}
}

// MaxTotal is the hard limit on stored files per contract for the category,
// counting both previously stored and newly accepted files.
func (c Category) MaxTotal() int {
	switch c {
	case CategoryPassport:
		return 2
	case CategoryVisa:
		return 1
	case CategoryCompletedContract:
		return 3
	default:
		return 1
	}
}

// UsesRandomSuffix reports whether new filenames get a random numeric
// suffix. Passport images do not: a re-upload overwrites the single file
// stored at the bare slug path.
func (c Category) UsesRandomSuffix() bool {
	return c != CategoryPassport
}

// Folder is the storage folder name for the category.
func (c Category) Folder() string {
	return string(c)
}
