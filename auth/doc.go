// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifiers, receipts and voter pseudonyms.

# Member IDs

The service does not authenticate members. Requests that vote or sign name
the member in the X-Member-ID header, checked for shape only:

	id, err := auth.ParseMemberID(r.Header.Get("X-Member-ID"))

# Voter Hashes

Dedup registers never store member ids. VoterHash is an HMAC-SHA256 of the
scope (election or petition id) and the member id, keyed by RECEIPT_SALT:

	hash := auth.VoterHash(electionID, memberID, cfg.ReceiptSalt)

The ballot tables carry no voter column at all, so a recorded ballot cannot
be traced back to the hash that was registered with it.

# Receipts

Every recorded vote returns a random, opaque confirmation id:

	receipt, err := auth.GenerateReceipt()  // "VT-1bQ7xZk3W-9fHq2LmP"

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Rate limiter keys use a salted hash of the client address:

	hash := auth.HashIP(ipAddress, salt)
*/
package auth
