package domain

// SourceTag identifies the monitored site or board an article came from.
// The set is closed: every persisted article carries exactly one of these.
type SourceTag string

const (
	SourceChangdeokgung    SourceTag = "cdg"
	SourceChanggyeonggung  SourceTag = "cgg"
	SourceDeoksugungEvents SourceTag = "dsg-e"
	SourceDeoksugungNotice SourceTag = "dsg-n"
	SourceGyeongbokgung    SourceTag = "gbg"
	SourceJongmyo          SourceTag = "jm"
	SourceRoyalTombsNotice SourceTag = "rt-n"
	SourceRoyalTombsEvents SourceTag = "rt-e"
)

var sourceTags = map[SourceTag]bool{
	SourceChangdeokgung:    true,
	SourceChanggyeonggung:  true,
	SourceDeoksugungEvents: true,
	SourceDeoksugungNotice: true,
	SourceGyeongbokgung:    true,
	SourceJongmyo:          true,
	SourceRoyalTombsNotice: true,
	SourceRoyalTombsEvents: true,
}

func (t SourceTag) Valid() bool {
	return sourceTags[t]
}

// SourceTags returns all known tags, for config validation and CLI help.
func SourceTags() []SourceTag {
	tags := make([]SourceTag, 0, len(sourceTags))
	for t := range sourceTags {
		tags = append(tags, t)
	}
	return tags
}
