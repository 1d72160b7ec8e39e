// Package atom is the application-lifetime context: it owns the host, one
// deferral registry per builder category and the factories that hand out
// builders, deferred or immediate.
//
// Factory calls made before the checkpoint hook fires are recorded and
// replayed when it fires; calls made afterwards build immediately.
//
//	app := atom.New(h)
//	app.Form("contact").Fields("name", "email", "message").SendTo("me@example.com")
//	app.PostType("book").Fields("title", "author").Public()
//	h.DoAction("init") // replays both
package atom
