package export

import "strings"

var uzOnes = []string{"", "bir", "ikki", "uch", "to'rt", "besh", "olti", "yetti", "sakkiz", "to'qqiz"}

var uzTens = []string{"", "o'n", "yigirma", "o'ttiz", "qirq", "ellik", "oltmish", "yetmish", "sakson", "to'qson"}

var uzScales = []struct {
	value int64
	name  string
}{
	{1_000_000_000_000, "trillion"},
	{1_000_000_000, "milliard"},
	{1_000_000, "million"},
	{1_000, "ming"},
}

// NumberToWordsUz spells an amount in Uzbek, as written into contract
// documents next to the numeric figure.
func NumberToWordsUz(n int64) string {
	if n == 0 {
		return "nol"
	}

	var parts []string
	if n < 0 {
		parts = append(parts, "minus")
		n = -n
	}

	for _, scale := range uzScales {
		if n >= scale.value {
			parts = append(parts, hundredsUz(n/scale.value), scale.name)
			n %= scale.value
		}
	}
	if n > 0 {
		parts = append(parts, hundredsUz(n))
	}

	return strings.Join(compact(parts), " ")
}

func hundredsUz(n int64) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, uzOnes[n/100], "yuz")
		n %= 100
	}
	if n >= 10 {
		parts = append(parts, uzTens[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, uzOnes[n])
	}
	return strings.Join(compact(parts), " ")
}

func compact(parts []string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
