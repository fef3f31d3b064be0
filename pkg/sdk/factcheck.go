package realitycheck

import "context"

// Analyze classifies news text, retrieves evidence and explains the verdict.
func (c *Client) Analyze(ctx context.Context, text string) (a Analysis, err error) {
	cl := newCall("analyze")
	defer func() { c.obs.observe(cl, err) }()

	err = c.postJSON(ctx, cl, "/v1/analyze", map[string]string{"text": text}, &a)
	return a, err
}

// AnalyzeImage fact-checks a screenshot of news. text is used when OCR yields
// nothing and may be empty.
func (c *Client) AnalyzeImage(ctx context.Context, filename string, image []byte, text string) (a Analysis, err error) {
	cl := newCall("analyze_image")
	defer func() { c.obs.observe(cl, err) }()

	var fields map[string]string
	if text != "" {
		fields = map[string]string{"text": text}
	}
	err = c.postFile(ctx, cl, "/v1/analyze", filename, image, fields, &a)
	return a, err
}

// Classify labels news text without retrieval.
func (c *Client) Classify(ctx context.Context, text string) (cls Classification, err error) {
	cl := newCall("classify")
	defer func() { c.obs.observe(cl, err) }()

	err = c.postJSON(ctx, cl, "/v1/classify", map[string]string{"text": text}, &cls)
	return cls, err
}

// Retrieve returns the k evidence articles most similar to text.
// k <= 0 uses the server default.
func (c *Client) Retrieve(ctx context.Context, text string, k int) (articles []Article, err error) {
	cl := newCall("retrieve")
	defer func() { c.obs.observe(cl, err) }()

	req := struct {
		Text string `json:"text"`
		K    *int   `json:"k,omitempty"`
	}{Text: text}
	if k > 0 {
		req.K = &k
	}

	var resp struct {
		Results []Article `json:"results"`
	}
	if err = c.postJSON(ctx, cl, "/v1/retrieve", req, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}
