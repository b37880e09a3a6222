// Package mdreport converts the ETL deployment Markdown write-up into a
// styled PDF report.
//
// # Quick Start
//
//	conv, err := mdreport.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	res, err := conv.ConvertFile(ctx,
//	    mdreport.InputFileName, mdreport.OutputFileName)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%.1f KB, %d pages\n", res.PDF.KB(), res.PDF.Pages)
//
// # Conversion Pipeline
//
//  1. Source reading: existence check, binary rejection, charset decoding
//  2. Preprocessing: line endings, abbreviation definitions, markdown="1" blocks
//  3. Markdown to HTML via goldmark (GFM, footnotes, definition lists,
//     heading attributes, chroma highlighting)
//  4. HTML passes: attribute lists, abbreviations, relative paths, [TOC]
//  5. Document shell with the fixed report metadata and stylesheet
//  6. PDF rendering: headless Chrome (go-rod) or the pure-Go fpdf engine
//
// The report metadata, stylesheet and file names are fixed. Options only
// tune how the PDF is rendered.
//
// # Browser Requirements
//
// The default chrome engine needs Chrome or Chromium. go-rod downloads a
// managed Chromium on first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN
// to use an installed browser and ROD_NO_SANDBOX=1 in containers. The fpdf
// engine needs no browser.
package mdreport
