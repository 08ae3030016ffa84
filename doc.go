// Package claimdex detects duplicate and near-duplicate product claims by
// combining perceptual image hashing with joint image/text embeddings over an
// append-only local record store.
//
// Every submitted claim (photo plus free-text description) is fingerprinted
// with a perceptual hash and embedded into a shared vector space
// (0.4 * image + 0.6 * text). The claim is then compared against the full
// stored history:
//
//   - an identical perceptual hash is an exact duplicate
//   - cosine similarity above 0.85 is the same image, re-encoded or edited
//   - cosine similarity above 0.65 is the same narrative with a new photo
//
// Matched claims join the existing claim cluster; everything else mints a new
// cluster id. All submissions are recorded, duplicates included, so clusters
// accumulate the full fraud trail.
//
//	client, _ := claimdex.Open("claims.db",
//	    claimdex.WithOpenAI("http://localhost:9000/v1", apiKey, "clip-vit-base-patch32", 512),
//	    claimdex.WithCacheTTL(time.Hour),
//	)
//	defer client.Close()
//
//	res, _ := client.Submit(ctx, claimdex.SubmitRequest{
//	    Image:       photo,
//	    Description: "arrived shattered, box was soaked",
//	    CustomerID:  "cust-8841",
//	    OrderID:     "ord-100234",
//	    Marketplace: "amazon",
//	})
//	if res.Verdict != claimdex.NoDuplicate {
//	    // flag for manual review: res.ClusterID, res.MatchedCustomerID
//	}
//
// The same engine is exposed as an HTTP service by cmd/claimdex.
package claimdex
