// Package docstore is a Firestore-style client for the panchayat document store.
//
// Documents live under slash-delimited paths and are addressed through
// references built with Collection and Doc. Queries are composed with Query
// from Where, OrderBy and Limit constraints and run over a REST transport:
//
//	c := docstore.NewClient(os.Getenv("DOCSTORE_API_URL"))
//	members := docstore.Collection(docstore.Seg("villages"), docstore.Seg(villageID), docstore.Seg("members"))
//	snap, err := c.GetDocs(ctx, docstore.Query(members,
//		docstore.Where("age", docstore.OpGreaterOrEqual, 18),
//		docstore.OrderBy("name", docstore.Asc),
//		docstore.Limit(20),
//	))
//
// Realtime listeners are emulated by polling: OnSnapshot fetches immediately,
// then again on every tick until the returned Unsubscribe is called.
package docstore
