package lexical

// englishStopwords are common English function and filler words.
var englishStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "can", "had", "her",
	"was", "one", "our", "out", "day", "get", "has", "him", "his", "how", "its",
	"may", "new", "now", "old", "see", "two", "way", "who", "boy", "did", "man",
	"men", "put", "say", "she", "too", "use", "this", "that", "with", "have",
	"from", "they", "know", "want", "been", "good", "much", "some", "time",
	"very", "when", "come", "here", "just", "like", "long", "make", "many",
	"over", "such", "take", "than", "them", "well", "were", "will", "your",
	"said", "each", "which", "their", "would", "there", "could", "other",
	"after", "first", "never", "these", "think", "where", "being", "every",
	"great", "might", "shall", "still", "those", "under", "while", "years",
	"again", "before", "large", "place", "small", "sound", "spell", "through",
	"another", "because", "between", "change", "follow", "mother", "should",
	"without", "around", "became", "during", "family", "friend", "little",
	"number", "people", "please", "school", "seemed", "turned", "wanted",
	"better", "enough", "example", "happened", "important", "instead",
	"nothing", "problem", "question", "remember", "something", "sometimes",
	"together", "understand", "almost", "already", "although", "anything",
	"different", "everything", "following", "interest", "probably",
}

// turkishStopwords are common Turkish pronouns, particles, basic verbs and
// adjectives.
var turkishStopwords = []string{
	"bir", "bu", "şu", "o", "ve", "ile", "için", "da", "de", "den", "dan", "e",
	"a", "ya", "ye", "nin", "nın", "nun", "nün", "lar", "ler", "ı", "i", "u",
	"ü", "ben", "sen", "biz", "siz", "onlar", "benim", "senin", "bizim",
	"sizin", "onların", "beni", "seni", "bizi", "sizi", "onları", "bana",
	"sana", "bize", "size", "onlara", "bende", "sende", "bizde", "sizde",
	"onlarda", "benden", "senden", "bizden", "sizden", "onlardan", "benimle",
	"seninle", "bizimle", "sizinle", "onlarla", "var", "yok", "olmak", "etmek",
	"yapmak", "gelmek", "gitmek", "almak", "vermek", "görmek", "bilmek",
	"istemek", "çok", "az", "büyük", "küçük", "iyi", "kötü", "güzel", "çirkin",
	"yeni", "eski", "genç", "yaşlı", "uzun", "kısa", "geniş", "dar", "yüksek",
	"alçak", "derin", "sığ", "hızlı", "yavaş", "sıcak", "soğuk", "ılık",
	"temiz", "kirli", "açık", "kapalı", "kolay", "zor", "basit", "karmaşık",
	"doğru", "yanlış", "gerçek", "sahte", "canlı", "ölü", "mutlu", "üzgün",
	"kızgın", "korkmuş", "şaşkın", "sakin", "heyecanlı", "yorgun", "dinç", "aç",
	"tok", "susamış", "kanmış", "hasta", "sağlıklı", "güçlü", "zayıf", "şişman",
	"kalın", "ince", "dolu", "boş", "tam", "yarım", "bütün", "parça", "tek",
	"çift", "ilk", "son", "önce", "sonra", "şimdi", "dün", "bugün", "yarın",
	"geçen", "gelecek", "her", "hiç", "bazen", "hep", "hiçbir", "bazı", "tüm",
	"hepsi", "kimse", "herkes", "biri", "bazısı", "çoğu", "azı", "tamamı",
	"yarısı", "üçte", "dörtte", "beşte", "altıda", "yedide", "sekizde",
	"dokuzda", "onda", "yüzde", "binde", "milyonda", "trilyonda",
}

// Stopwords is the process-wide English+Turkish stop-word set used by tag
// extraction. It is built once at init and must not be mutated.
var Stopwords = NewSet(englishStopwords, turkishStopwords)

// Set is a read-only membership set of words.
type Set map[string]struct{}

// NewSet builds a Set from one or more word lists.
func NewSet(lists ...[]string) Set {
	s := make(Set)
	for _, l := range lists {
		for _, w := range l {
			s[w] = struct{}{}
		}
	}
	return s
}

// Contains reports whether w is in the set.
func (s Set) Contains(w string) bool {
	_, ok := s[w]
	return ok
}
