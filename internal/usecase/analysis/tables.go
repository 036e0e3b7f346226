package analysis

// DefaultProvider is the provider name used by the built-in candidate lists.
const DefaultProvider = "huggingface"

// Bypass lengths, in characters.
const (
	summaryBypassLen   = 50
	categoryBypassLen  = 10
	tagBypassLen       = 10
	tagRemoteMinLen    = 50
	searchMinQueryLen  = 3
	summaryInputLen    = 1000
	classifyInputLen   = 512
	nerInputLen        = 512
	searchNoteTextLen  = 500
	matchedContentLen  = 100
	minSummaryLen      = 10
	maxTags            = 5
	maxClassifyLabels  = 3
	maxSearchResults   = 10
	summarySentenceMax = 3
)

// Scoring constants.
const (
	searchThreshold     = 0.3
	titleBoost          = 0.5
	fuzzyPairBonus      = 0.4
	fuzzyMinLen         = 4
	fuzzySimilarity     = 0.8
	substringBonus      = 0.8
	sentenceLenWeight   = 0.1
	sentenceWordWeight  = 2.0
	sentenceWordMinLen  = 3
	summaryMaxShare     = 0.6
	summaryCutShare     = 0.4
	ruleBasedConfidence = 0.85
	generalFallbackConf = 0.5
)

// Candidate names one model attempt in a fallback chain.
type Candidate struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// Models holds the ordered candidate list of every remote-capable stage.
// Earlier candidates are preferred.
type Models struct {
	Summarization  []Candidate `yaml:"summarization"`
	Classification []Candidate `yaml:"classification"`
	NER            []Candidate `yaml:"ner"`
	Similarity     []Candidate `yaml:"similarity"`
}

// DefaultModels returns the built-in candidate lists.
func DefaultModels() Models {
	return Models{
		Summarization: hf(
			"facebook/bart-large-cnn",
			"google/pegasus-xsum",
			"sshleifer/distilbart-cnn-12-6",
		),
		Classification: hf(
			"cardiffnlp/twitter-roberta-base-emotion",
		),
		NER: hf(
			"savasy/bert-base-turkish-ner-cased",
			"dbmdz/bert-base-turkish-cased",
			"dbmdz/bert-base-turkish-uncased",
			"microsoft/Multilingual-MiniLM-L12-H384",
			"dbmdz/bert-large-cased-finetuned-conll03-english",
			"dslim/bert-base-NER",
		),
		Similarity: hf(
			"sentence-transformers/paraphrase-multilingual-MiniLM-L12-v2",
			"sentence-transformers/all-MiniLM-L6-v2",
			"sentence-transformers/paraphrase-multilingual-mpnet-base-v2",
		),
	}
}

func hf(models ...string) []Candidate {
	out := make([]Candidate, len(models))
	for i, m := range models {
		out[i] = Candidate{Provider: DefaultProvider, Model: m}
	}
	return out
}

type categoryRule struct {
	name     string
	keywords []string
}

// categoryRules is the rule-based table in declaration order; ties go to the
// earlier entry.
var categoryRules = []categoryRule{
	{"Work", []string{"meeting", "project", "deadline", "task", "work", "business", "client", "team"}},
	{"Personal", []string{"family", "friend", "personal", "home", "hobby", "vacation", "birthday"}},
	{"Study", []string{"study", "learn", "course", "exam", "homework", "research", "book", "lesson"}},
	{"Health", []string{"doctor", "medicine", "exercise", "diet", "health", "appointment", "symptoms"}},
	{"Finance", []string{"money", "budget", "expense", "income", "investment", "bill", "payment"}},
	{"Shopping", []string{"buy", "purchase", "shop", "price", "discount", "store", "cart"}},
}

type labelRule struct {
	label    string
	score    float64
	keywords []string
}

// classifyFallbackRules back the Classify variant when no classifier answers.
var classifyFallbackRules = []labelRule{
	{"work", 0.8, []string{"work", "job", "meeting", "project", "task", "business"}},
	{"education", 0.7, []string{"study", "learn", "education", "school", "university", "course"}},
	{"personal", 0.6, []string{"personal", "life", "family", "friend", "home"}},
	{"creative", 0.7, []string{"idea", "creative", "design", "art", "inspiration"}},
}
