// Package realitycheck is a typed Go client for the realitycheck HTTP API:
// news fact-checking against a curated evidence corpus, and grounded study
// tools over uploaded notes.
//
// # Fact-checking
//
//	client, _ := realitycheck.New("http://localhost:8080", realitycheck.WithAPIKey(key))
//	a, _ := client.Analyze(ctx, "Scientists confirm chocolate cures flu")
//	fmt.Println(a.Label, a.Confidence, a.DetailedExplanation)
//
// # Notes
//
//	_, _ = client.UploadNotes(ctx, "biology.pdf", pdfBytes)
//	ans, _ := client.Ask(ctx, "What do mitochondria produce?")
//	cards, _ := client.Generate(ctx, realitycheck.ModeFlashcards)
//
// Failed calls return an *APIError that unwraps to one of the sentinel errors,
// so errors.Is(err, realitycheck.ErrNoCorpus) works across the wire.
package realitycheck
