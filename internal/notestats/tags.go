package notestats

// NotHelpfulHardToUnderstand is excluded from FilterTagOutliers by
// definition; outlier filtering is intentionally disabled for it.
const NotHelpfulHardToUnderstand = "notHelpfulHardToUnderstand"

// NotHelpfulTagsOrder is the fixed definition order used both for
// FilterTagOutliers' tag scan and as the tie-break order for
// InsufficientExplanation's not-helpful top-tag selection. Order here is
// significant: it determines the order impacting tags are joined into
// activeFilterTags and which tag wins a count tie when picking top tags.
var NotHelpfulTagsOrder = []string{
	"notHelpfulOther",
	"notHelpfulIncorrect",
	"notHelpfulSourcesMissingOrUnreliable",
	"notHelpfulOpinionSpeculationOrBias",
	"notHelpfulMissingKeyPoints",
	"notHelpfulOutdated",
	NotHelpfulHardToUnderstand,
	"notHelpfulArgumentativeOrBiased",
	"notHelpfulOffTopic",
	"notHelpfulSpamHarassmentOrAbuse",
	"notHelpfulIrrelevantSources",
	"notHelpfulOpinionSpeculation",
	"notHelpfulNoteNotNeeded",
}

// HelpfulTagsOrder is the tie-break order for InsufficientExplanation's
// CRH-branch top-tag selection.
var HelpfulTagsOrder = []string{
	"helpfulOther",
	"helpfulInformative",
	"helpfulClear",
	"helpfulEmpathetic",
	"helpfulGoodSources",
	"helpfulUniqueContext",
	"helpfulAddressesClaim",
	"helpfulImportantContext",
	"helpfulUnbiasedLanguage",
}

// AdjustedColumn returns the "<tag>_adjusted" key used to look up a tag's
// adjusted total in a NoteRow.
func AdjustedColumn(tag string) string { return tag + "_adjusted" }

// AdjustedRatioColumn returns the "<tag>_adjusted_ratio" key used to look up
// a tag's adjusted ratio in a NoteRow.
func AdjustedRatioColumn(tag string) string { return tag + "_adjusted_ratio" }
