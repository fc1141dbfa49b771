package tablemodel

// Engine Configuration Constants
// These constants define the default behavior of the normalization engine

// Tokenization Configuration
const (
	// MinSpacesForSeparation is how many consecutive spaces split two fields
	MinSpacesForSeparation = 2

	// MinFieldsPerDataRow is the minimum number of non-empty fields a data line needs
	// to become a row; anything shorter is dropped as noise
	MinFieldsPerDataRow = 2

	// DefaultDocumentInfoWindow is the number of leading non-blank lines that may
	// carry document metadata
	DefaultDocumentInfoWindow = 6
)

// Layout Configuration
const (
	// InsuranceLabelColumns is the number of label columns (particulars, schedule)
	InsuranceLabelColumns = 2

	// InsuranceLinkedColumns is the number of linked-business columns
	InsuranceLinkedColumns = 5

	// InsuranceNonLinkedColumns is the number of non-linked columns (participating + non-participating)
	InsuranceNonLinkedColumns = 12

	// InsuranceGrandTotalColumns is the number of grand total columns
	InsuranceGrandTotalColumns = 1

	// InsuranceColumnCount is the declared column count of the insurance statement layout
	InsuranceColumnCount = InsuranceLabelColumns + InsuranceLinkedColumns + InsuranceNonLinkedColumns + InsuranceGrandTotalColumns

	// DefaultGroupName is the numeric group assigned to generic table columns
	DefaultGroupName = "default"

	// SynthesizedFirstHeader is the label of column 0 when headers are synthesized
	SynthesizedFirstHeader = "Description"
)

// Cell Display Configuration
const (
	// MaxCollapsedArrayItems is the number of array items shown while collapsed
	MaxCollapsedArrayItems = 5

	// MaxCollapsedObjectChars is the serialized object length shown while collapsed
	MaxCollapsedObjectChars = 100

	// MaxCollapsedTextChars is the text length shown while collapsed
	MaxCollapsedTextChars = 150

	// MinPhoneLength is the length a phone-like string must exceed
	MinPhoneLength = 8

	// MinPhoneDigits is the digit count a phone number needs unless it has a '+' prefix
	MinPhoneDigits = 10

	// Ellipsis is appended to truncated content
	Ellipsis = "…"

	// TrueLabel and FalseLabel are the fixed boolean display values
	TrueLabel  = "True"
	FalseLabel = "False"

	// DefaultLocale is the language tag used for number grouping
	DefaultLocale = "en"
)
