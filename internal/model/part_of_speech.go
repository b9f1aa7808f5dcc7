package model

// PartOfSpeech is the wire value of a grammatical category.
type PartOfSpeech string

const (
	Noun              PartOfSpeech = "noun"
	ProperNoun        PartOfSpeech = "propn."
	IntransVerb       PartOfSpeech = "v. intra."
	TransVerb         PartOfSpeech = "v. trans."
	VerbRoot          PartOfSpeech = "v. root"
	AuxiliaryVerb     PartOfSpeech = "v. aux."
	Adjective         PartOfSpeech = "adj."
	Pronoun           PartOfSpeech = "pron."
	Preposition       PartOfSpeech = "preposition"
	Postposition      PartOfSpeech = "postposition"
	Particle          PartOfSpeech = "particle"
	Conjunction       PartOfSpeech = "conjunction"
	Interjection      PartOfSpeech = "interjection"
	Determiner        PartOfSpeech = "determiner"
	Adverb            PartOfSpeech = "adverb"
	Numeral           PartOfSpeech = "numeral"
	Classifier        PartOfSpeech = "classifier"
	Prefix            PartOfSpeech = "prefix"
	Suffix            PartOfSpeech = "suffix"
	Infix             PartOfSpeech = "infix"
	Circumfix         PartOfSpeech = "circumfix"
	Idiom             PartOfSpeech = "idiom"
	Coverb            PartOfSpeech = "coverb"
	Preverb           PartOfSpeech = "preverb"
	OtherPartOfSpeech PartOfSpeech = "other"
)

// PartOfSpeechOption pairs a wire value with its display label.
type PartOfSpeechOption struct {
	Value PartOfSpeech
	Label string
}

// partsOfSpeech is ordered as presented in the entry form
var partsOfSpeech = []PartOfSpeechOption{
	{Noun, "Noun"},
	{ProperNoun, "Proper Noun"},
	{IntransVerb, "Intransitive Verb"},
	{TransVerb, "Transitive Verb"},
	{VerbRoot, "Verb root"},
	{AuxiliaryVerb, "Auxiliary Verb"},
	{Adjective, "Adjective"},
	{Pronoun, "Pronoun"},
	{Preposition, "Preposition"},
	{Postposition, "Postposition"},
	{Particle, "Particle"},
	{Conjunction, "Conjunction"},
	{Interjection, "Interjection"},
	{Determiner, "Determiner"},
	{Adverb, "Adverb"},
	{Numeral, "Numeral"},
	{Classifier, "Classifier"},
	{Prefix, "Prefix"},
	{Suffix, "Suffix"},
	{Infix, "Infix"},
	{Circumfix, "Circumfix"},
	{Idiom, "Idiom"},
	{Coverb, "Coverb"},
	{Preverb, "Preverb"},
	{OtherPartOfSpeech, "Other"},
}

var partOfSpeechLabels = func() map[PartOfSpeech]string {
	m := make(map[PartOfSpeech]string, len(partsOfSpeech))
	for _, o := range partsOfSpeech {
		m[o.Value] = o.Label
	}
	return m
}()

// PartsOfSpeech returns every known option in form order.
func PartsOfSpeech() []PartOfSpeechOption {
	out := make([]PartOfSpeechOption, len(partsOfSpeech))
	copy(out, partsOfSpeech)
	return out
}

// Valid reports whether p is a known wire value.
func (p PartOfSpeech) Valid() bool {
	_, ok := partOfSpeechLabels[p]
	return ok
}

// Label returns the display label, or the raw value when unknown.
func (p PartOfSpeech) Label() string {
	if label, ok := partOfSpeechLabels[p]; ok {
		return label
	}
	return string(p)
}
