// Package translit реализует двустороннюю транслитерацию сербского языка
// между кириллицей и латиницей по официальным правилам (Вуковица <-> Гаевица).
// Используется для автозаполнения парных полей title/titleCyrillic,
// author/authorCyrillic и description/descriptionCyrillic при создании
// и редактировании объявлений.
package translit

import "strings"

// cyrillicToLatin - таблица кириллица -> латиница
// Каждой кириллической букве соответствует ровно одна латинская замена,
// три буквы (Љ, Њ, Џ) дают двухбуквенные диграфы
var cyrillicToLatin = map[rune]string{
	'А': "A", 'а': "a",
	'Б': "B", 'б': "b",
	'В': "V", 'в': "v",
	'Г': "G", 'г': "g",
	'Д': "D", 'д': "d",
	'Ђ': "Đ", 'ђ': "đ",
	'Е': "E", 'е': "e",
	'Ж': "Ž", 'ж': "ž",
	'З': "Z", 'з': "z",
	'И': "I", 'и': "i",
	'Ј': "J", 'ј': "j",
	'К': "K", 'к': "k",
	'Л': "L", 'л': "l",
	'Љ': "Lj", 'љ': "lj",
	'М': "M", 'м': "m",
	'Н': "N", 'н': "n",
	'Њ': "Nj", 'њ': "nj",
	'О': "O", 'о': "o",
	'П': "P", 'п': "p",
	'Р': "R", 'р': "r",
	'С': "S", 'с': "s",
	'Т': "T", 'т': "t",
	'Ћ': "Ć", 'ћ': "ć",
	'У': "U", 'у': "u",
	'Ф': "F", 'ф': "f",
	'Х': "H", 'х': "h",
	'Ц': "C", 'ц': "c",
	'Ч': "Č", 'ч': "č",
	'Џ': "Dž", 'џ': "dž",
	'Ш': "Š", 'ш': "š",
}

// latinToCyrillic - таблица латиница -> кириллица для одиночных символов
var latinToCyrillic = map[rune]rune{
	'A': 'А', 'a': 'а',
	'B': 'Б', 'b': 'б',
	'V': 'В', 'v': 'в',
	'G': 'Г', 'g': 'г',
	'D': 'Д', 'd': 'д',
	'Đ': 'Ђ', 'đ': 'ђ',
	'E': 'Е', 'e': 'е',
	'Ž': 'Ж', 'ž': 'ж',
	'Z': 'З', 'z': 'з',
	'I': 'И', 'i': 'и',
	'J': 'Ј', 'j': 'ј',
	'K': 'К', 'k': 'к',
	'L': 'Л', 'l': 'л',
	'M': 'М', 'm': 'м',
	'N': 'Н', 'n': 'н',
	'O': 'О', 'o': 'о',
	'P': 'П', 'p': 'п',
	'R': 'Р', 'r': 'р',
	'S': 'С', 's': 'с',
	'T': 'Т', 't': 'т',
	'Ć': 'Ћ', 'ć': 'ћ',
	'U': 'У', 'u': 'у',
	'F': 'Ф', 'f': 'ф',
	'H': 'Х', 'h': 'х',
	'C': 'Ц', 'c': 'ц',
	'Č': 'Ч', 'č': 'ч',
	'Š': 'Ш', 'š': 'ш',
}

// digraphs - диграфы латиницы, проверяются ДО одиночных символов
// (жадное сопоставление), иначе "Nj" распался бы на "Н" + "ј".
// Распознаются только формы с заглавной первой буквой и полностью строчные:
// смешанный регистр вида "dŽ" не считается диграфом и обрабатывается
// посимвольно - поведение исходной реализации, закреплено тестами
var digraphs = []struct {
	latin    string
	cyrillic rune
}{
	{"Dž", 'Џ'},
	{"dž", 'џ'},
	{"Lj", 'Љ'},
	{"lj", 'љ'},
	{"Nj", 'Њ'},
	{"nj", 'њ'},
}

// Result содержит обе формы записи одного и того же текста
type Result struct {
	Latin    string `json:"latin"`
	Cyrillic string `json:"cyrillic"`
}

// CyrillicToLatin конвертирует кириллический текст в латиницу.
// Символы вне сербского алфавита (цифры, пунктуация, латиница)
// проходят без изменений. Ошибок не бывает - функция тотальна
func CyrillicToLatin(text string) string {
	if text == "" {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	for _, r := range text {
		if mapped, ok := cyrillicToLatin[r]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// LatinToCyrillic конвертирует латинский текст в кириллицу.
// На каждой позиции сначала жадно проверяются двухсимвольные диграфы
// (Dž, Lj, Nj и их строчные формы), затем одиночный символ
func LatinToCyrillic(text string) string {
	if text == "" {
		return text
	}

	runes := []rune(text)

	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(runes) {
		if i+1 < len(runes) {
			pair := string(runes[i : i+2])
			if cyr, ok := matchDigraph(pair); ok {
				b.WriteRune(cyr)
				i += 2
				continue
			}
		}

		if mapped, ok := latinToCyrillic[runes[i]]; ok {
			b.WriteRune(mapped)
		} else {
			b.WriteRune(runes[i])
		}
		i++
	}

	return b.String()
}

// matchDigraph проверяет пару символов по таблице диграфов
func matchDigraph(pair string) (rune, bool) {
	for _, d := range digraphs {
		if d.latin == pair {
			return d.cyrillic, true
		}
	}
	return 0, false
}

// IsCyrillic определяет, является ли текст преимущественно кириллическим.
// Считаются алфавитные символы обоих алфавитов; текст кириллический,
// если кириллических символов СТРОГО больше латинских.
// Пустая строка, равенство и текст без букв классифицируются как латиница
func IsCyrillic(text string) bool {
	if text == "" {
		return false
	}

	var cyrillicCount, latinCount int
	for _, r := range text {
		switch {
		case isCyrillicLetter(r):
			cyrillicCount++
		case isLatinLetter(r):
			latinCount++
		}
	}

	return cyrillicCount > latinCount
}

// isCyrillicLetter соответствует классу [А-Яа-яЁё] исходной эвристики
func isCyrillicLetter(r rune) bool {
	return (r >= 'А' && r <= 'я') || r == 'Ё' || r == 'ё'
}

// isLatinLetter соответствует классу [A-Za-z] плюс сербские диакритики
func isLatinLetter(r rune) bool {
	if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
		return true
	}
	switch r {
	case 'Č', 'č', 'Ć', 'ć', 'Ž', 'ž', 'Š', 'š', 'Đ', 'đ':
		return true
	}
	return false
}

// AutoTransliterate определяет письменность текста и возвращает обе формы.
// Кириллический текст конвертируется в латиницу, латинский - в кириллицу,
// исходная форма сохраняется как есть. Для пустой строки - пустая пара
func AutoTransliterate(text string) Result {
	if text == "" {
		return Result{}
	}

	if IsCyrillic(text) {
		return Result{
			Latin:    CyrillicToLatin(text),
			Cyrillic: text,
		}
	}

	return Result{
		Latin:    text,
		Cyrillic: LatinToCyrillic(text),
	}
}
