// Package language normalizes the LanguageISO field of comic metadata.
//
// Users and taggers write languages as ISO 639-1 or 639-2 codes, BCP 47 tags
// such as "pt-BR", or English names. Everything is reduced to the two-letter
// base code ComicInfo expects, with a three-letter fallback for languages
// that have no two-letter code.
package language
