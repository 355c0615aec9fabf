// Package wapploxx carries the shared configuration surface for the wAppLoxx
// controller SDK and CLI. The SDK itself lives in pkt.systems/wapploxx/client;
// wire types live in pkt.systems/wapploxx/api.
//
// # Talking to a controller
//
//	cli, err := client.New("https://192.168.1.50", "admin", "secret",
//	    client.WithInsecureTLS(),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx := context.Background()
//	defer cli.Close(ctx)
//
//	status, err := cli.PanelStatus(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(status.State())
//
// Login happens implicitly on the first operation and again whenever the
// controller expires the session (observable as HTTP 401). Controllers block
// the calling address after failed logins; the SDK persists the reported
// lockout so a restarted process fails fast with *client.IPBlockedError
// instead of extending the block with another attempt.
//
// # Locks
//
//	locks, err := cli.Locks(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	front, err := locks.ByID(2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := front.Open(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// The collection is a snapshot of one listing fetch; construct a new one when
// fresh descriptors are needed.
package wapploxx
