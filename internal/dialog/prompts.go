// SPDX-License-Identifier: MIT

package dialog

// Fixed ask phrases per language and canonical slot. Deterministic by
// design: collecting account numbers and PINs must not depend on a model
// round trip.
var askPrompts = map[string]map[string]string{
	"en": {
		"amount":                     "How much would you like to send?",
		"recipient_name":             "What is the recipient's name?",
		"destination_account_number": "What is the recipient's account number?",
		"destination_bank":           "Which bank is the recipient's account with?",
		"source_account_number":      "Which of your accounts should I use? Please send the account number.",
		"source_account_name":        "What name is on the sending account?",
		"transaction_pin":            "Please enter your transaction PIN.",
		"narration":                  "Any narration for this transfer?",
	},
	"pcm": {
		"amount":                     "How much you wan send?",
		"recipient_name":             "Wetin be the person name?",
		"destination_account_number": "Abeg send the person account number.",
		"destination_bank":           "Which bank the person dey use?",
		"source_account_number":      "Which of your account make I use? Abeg send the account number.",
		"source_account_name":        "Wetin be the name wey dey the account wey you wan send from?",
		"transaction_pin":            "Abeg enter your transaction PIN.",
		"narration":                  "You wan add any narration for this transfer?",
	},
	"ig": {
		"amount":                     "Ego ole ka ị chọrọ izipu?",
		"recipient_name":             "Kedu aha onye ị na-ezigara ego?",
		"destination_account_number": "Biko zite nọmba akaụntụ onye ahụ.",
		"destination_bank":           "Kedu ụlọ akụ onye ahụ na-eji?",
		"source_account_number":      "Kedu akaụntụ gị ka m ga-eji? Biko zite nọmba akaụntụ ahụ.",
		"source_account_name":        "Kedu aha dị na akaụntụ ị na-esi ezipu ego?",
		"transaction_pin":            "Biko tinye PIN azụmahịa gị.",
		"narration":                  "Ị chọrọ itinye nkọwa maka mbufe a?",
	},
	"yo": {
		"amount":                     "Elo ni o fẹ́ fi ránṣẹ́?",
		"recipient_name":             "Kí ni orúkọ ẹni tí o fẹ́ fi owó ránṣẹ́ sí?",
		"destination_account_number": "Jọ̀wọ́ fi nọ́mbà àkáǹtì ẹni náà ránṣẹ́.",
		"destination_bank":           "Báńkì wo ni ẹni náà ń lò?",
		"source_account_number":      "Àkáǹtì rẹ wo ni kí n lò? Jọ̀wọ́ fi nọ́mbà àkáǹtì náà ránṣẹ́.",
		"source_account_name":        "Orúkọ wo ló wà lórí àkáǹtì tí o fẹ́ fi ránṣẹ́?",
		"transaction_pin":            "Jọ̀wọ́ tẹ PIN ìdúnàádúrà rẹ.",
		"narration":                  "Ṣé o fẹ́ fi àlàyé kún ìfowóránṣẹ́ yìí?",
	},
	"ha": {
		"amount":                     "Nawa kake son aikawa?",
		"recipient_name":             "Menene sunan wanda za ka aika wa?",
		"destination_account_number": "Don Allah aiko lambar asusun mutumin.",
		"destination_bank":           "Wane banki mutumin yake amfani da shi?",
		"source_account_number":      "Wane asusunka zan yi amfani da shi? Don Allah aiko lambar asusun.",
		"source_account_name":        "Wane suna ke kan asusun da kake aikawa daga gare shi?",
		"transaction_pin":            "Don Allah shigar da PIN dinka na ciniki.",
		"narration":                  "Kana son karin bayani kan wannan aikawa?",
	},
}

// PromptFor returns the fixed ask phrase for a slot in the given
// language, falling back to English and then to "" for unknown slots.
func PromptFor(lang, slot string) string {
	if m, ok := askPrompts[lang]; ok {
		if p, ok := m[slot]; ok {
			return p
		}
	}
	return askPrompts["en"][slot]
}
