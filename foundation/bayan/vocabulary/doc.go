// Package vocabulary holds the bilingual word tables of the Bayan language.
//
// Package: vocabulary
// Title: Bayan Keyword and Alias Registry
// Description: Every keyword has one canonical name and any number of
//              spellings in English and Arabic. The tokenizer asks the
//              registry to classify a word; both spellings of a keyword
//              resolve to the same canonical entry, which keeps the parser
//              independent of the vocabulary a program was written in.
//              The registry also carries aliases for native functions so
//              `اطبع` and `print` name the same builtin.
// Version: v0.2.0
// Created: 2025-01-25
// Modified: 2025-10-02
//
// Change History:
// - 2025-01-25 v0.1.0: Command registry with aliases and abbreviations
// - 2025-10-02 v0.2.0: Rebuilt as the bilingual keyword registry
//
// Arabic spellings are matched after light normalization: tatweel is
// dropped and hamza-carrying alef forms fold to bare alef, so `اذا`
// and `إذا` are the same keyword. Identifiers are never normalized.
package vocabulary
