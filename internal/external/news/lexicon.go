package news

import (
	"strings"
	"unicode"
)

type weight struct {
	polarity     float64
	subjectivity float64
}

// lexicon scores headline vocabulary on polarity (-1 ~ 1) and subjectivity (0 ~ 1)
var lexicon = map[string]weight{
	"gain":       {0.4, 0.4},
	"gains":      {0.4, 0.4},
	"rise":       {0.3, 0.3},
	"rises":      {0.3, 0.3},
	"rally":      {0.5, 0.5},
	"rallies":    {0.5, 0.5},
	"surge":      {0.5, 0.6},
	"surges":     {0.5, 0.6},
	"jump":       {0.4, 0.5},
	"jumps":      {0.4, 0.5},
	"soar":       {0.6, 0.7},
	"soars":      {0.6, 0.7},
	"record":     {0.2, 0.3},
	"strong":     {0.4, 0.7},
	"robust":     {0.5, 0.6},
	"upbeat":     {0.5, 0.8},
	"optimism":   {0.5, 0.8},
	"bullish":    {0.6, 0.8},
	"boost":      {0.4, 0.5},
	"boosts":     {0.4, 0.5},
	"recovery":   {0.3, 0.4},
	"recovers":   {0.3, 0.4},
	"growth":     {0.3, 0.3},
	"beat":       {0.3, 0.4},
	"beats":      {0.3, 0.4},
	"good":       {0.7, 0.6},
	"best":       {1.0, 0.3},
	"fall":       {-0.4, 0.4},
	"falls":      {-0.4, 0.4},
	"drop":       {-0.4, 0.4},
	"drops":      {-0.4, 0.4},
	"decline":    {-0.4, 0.4},
	"declines":   {-0.4, 0.4},
	"slump":      {-0.6, 0.7},
	"slumps":     {-0.6, 0.7},
	"crash":      {-0.8, 0.8},
	"crashes":    {-0.8, 0.8},
	"plunge":     {-0.7, 0.7},
	"plunges":    {-0.7, 0.7},
	"tumble":     {-0.6, 0.6},
	"tumbles":    {-0.6, 0.6},
	"weak":       {-0.4, 0.7},
	"worries":    {-0.5, 0.8},
	"fears":      {-0.5, 0.8},
	"fear":       {-0.5, 0.8},
	"bearish":    {-0.6, 0.8},
	"selloff":    {-0.6, 0.6},
	"losses":     {-0.4, 0.4},
	"loss":       {-0.4, 0.4},
	"slowdown":   {-0.4, 0.5},
	"recession":  {-0.6, 0.6},
	"volatile":   {-0.3, 0.6},
	"volatility": {-0.3, 0.5},
	"uncertain":  {-0.3, 0.8},
	"bad":        {-0.7, 0.7},
	"worst":      {-1.0, 1.0},
	"steady":     {0.1, 0.3},
	"flat":       {-0.05, 0.3},
}

var negators = map[string]bool{
	"not":   true,
	"no":    true,
	"never": true,
	"isn't": true,
}

// Analyze scores a headline as the mean weight of the lexicon words it contains.
// A negator directly before a word flips and halves its polarity. Text without
// known words is neutral (0, 0).
func Analyze(text string) (polarity, subjectivity float64) {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	matched := 0
	for i, w := range words {
		wt, ok := lexicon[w]
		if !ok {
			continue
		}
		p := wt.polarity
		if i > 0 && negators[words[i-1]] {
			p *= -0.5
		}
		polarity += p
		subjectivity += wt.subjectivity
		matched++
	}

	if matched == 0 {
		return 0, 0
	}
	return clamp(polarity/float64(matched), -1, 1), clamp(subjectivity/float64(matched), 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
