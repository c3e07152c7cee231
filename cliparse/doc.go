// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Each setting is resolved in order:

 1. CLI flag
 2. Environment variable
 3. The .env file named by -env (default ".env"; a missing file is ignored)
 4. Built-in default

Values from the .env file never replace variables already in the
environment.

# Settings

	-p                   PORT                 Server port (3318)
	-d                   DATABASE_URL         DSN (sqlite: elections.db)
	-t                   DATABASE_TYPE        sqlite or postgres (sqlite)
	-receipt-salt        RECEIPT_SALT         HMAC key for voter hashes (required)
	-redis               REDIS_URL            Results cache (optional)
	-seed                SEED_FILE            YAML demo data (optional)
	-submit-delay        SUBMIT_DELAY         Ballot acknowledgement pause (2s)
	-signature-threshold SIGNATURE_THRESHOLD  Percent of members (20)
	-quorum              QUORUM_PERCENT       Percent of eligible members (50)
	-majority            MAJORITY_PERCENT     Percent of votes cast (66.67)
	-rate-limit          RATE_LIMIT           Writes per second per client (5)
	-rate-burst          RATE_BURST           Write burst per client (10)

# Validation

ParseFlags returns an error when RECEIPT_SALT is missing, when postgres is
selected without a URL, or when a percentage falls outside (0, 100].
*/
package cliparse
