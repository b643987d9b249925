package learning

// MediaRef is the persisted handle of a stored file. Embedded with a column prefix.
type MediaRef struct {
	Key       string `gorm:"column:key" json:"key,omitempty"`
	URL       string `gorm:"column:url" json:"url,omitempty"`
	MimeType  string `gorm:"column:mime_type" json:"mime_type,omitempty"`
	SizeBytes int64  `gorm:"column:size_bytes" json:"size_bytes,omitempty"`
}

func (m MediaRef) IsZero() bool { return m.Key == "" && m.URL == "" }
