// Package pipeline turns report Markdown into a print-ready HTML document.
//
// Stages, in order:
//   - Preprocess: line endings, abbreviation definitions, markdown="1" blocks
//   - ToHTML: goldmark with the report extension set and chroma classes
//   - Postprocess: one DOM pass for attribute lists, <abbr> wrapping,
//     relative path rewriting, the outline and [TOC] replacement
//   - DocumentBuilder: the fixed document shell with metadata, header and
//     footer blocks, plus the injected stylesheet
//
// PDF rendering lives in the root mdreport package.
package pipeline
