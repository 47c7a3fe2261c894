// Package printing renders bills and estimates as HTML and, through headless
// Chrome (chromedp), as A4 PDFs.
//
//	engine := NewTemplateEngine()
//	pdf, _ := NewChromedpRenderer(&cfg.Printing, logger)
//	docs := NewDocumentRenderer(engine, pdf, logger)
//	out, err := docs.RenderBill(ctx, bill, store, billingapp.FormatPDF)
package printing
