package realitycheck

import "context"

// UploadNotes replaces the notes corpus with the given document
// (.txt, .md, .pdf or .docx, by filename extension).
func (c *Client) UploadNotes(ctx context.Context, filename string, data []byte) (res UploadResult, err error) {
	cl := newCall("upload_notes")
	defer func() { c.obs.observe(cl, err) }()

	err = c.postFile(ctx, cl, "/v1/notes", filename, data, nil, &res)
	return res, err
}

// Ask answers a question strictly from the uploaded notes.
func (c *Client) Ask(ctx context.Context, question string) (ans Answer, err error) {
	cl := newCall("ask")
	defer func() { c.obs.observe(cl, err) }()

	err = c.postJSON(ctx, cl, "/v1/notes/ask", map[string]string{"question": question}, &ans)
	return ans, err
}

// Generate produces study material of the given mode from the uploaded notes.
func (c *Client) Generate(ctx context.Context, mode Mode) (g Generation, err error) {
	cl := newCall("generate")
	defer func() { c.obs.observe(cl, err) }()

	err = c.postJSON(ctx, cl, "/v1/notes/generate", map[string]string{"mode": string(mode)}, &g)
	return g, err
}
