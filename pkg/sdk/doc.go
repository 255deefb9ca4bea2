// Package arkival provides an embedded Go client for the arkival archive
// retrieval engine backed by Redis or Valkey.
//
// The client connects straight to the database, detects whether the search
// module is available and picks the matching similarity backend. With the
// module loaded, ranking runs inside the engine; without it, the client
// fetches candidate rows and ranks them in process.
//
//	client, _ := arkival.New(ctx,
//	    arkival.WithRedis("localhost:6379", ""),
//	    arkival.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	)
//	defer client.Close()
//
//	client.IngestDocument(ctx, arkival.Document{
//	    Filename: "annual_report_2020.pdf",
//	    Text:     reportText,
//	})
//	hits, _ := client.Search(ctx, arkival.SearchRequest{Query: "revenue growth"})
package arkival
