// Package pitchsearch is a Go client for the pitchsearch HTTP API.
//
//	client, _ := pitchsearch.New("http://localhost:8080", pitchsearch.WithAPIKey(key))
//	results, err := client.Search(ctx, "summer vibes")
//	if errors.Is(err, pitchsearch.ErrQueryRequired) {
//	    // blank query
//	}
//	for _, r := range results {
//	    fmt.Println(r.Percent(), r.Review.Title, r.Link())
//	}
package pitchsearch
