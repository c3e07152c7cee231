// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live pushes turnout updates to websocket subscribers.

	hub := live.NewHub()
	go hub.Run(ctx)

	// in the ballot handler, after commit
	hub.Broadcast(models.LiveUpdate{ElectionID: id, VotedCount: n, ...})

	// in the subscribe handler
	hub.ServeWS(w, r, electionID, snapshot)

Only counts are pushed, never selections, so live updates do not leak
partial results while an election is open.
*/
package live
