// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package seed loads demo organizations, members, elections and petitions
from a YAML file (SEED_FILE) at startup.

Election windows are durations relative to load time:

	elections:
	  - title: Executive Committee
	    starts_in: -1h   # opened an hour ago
	    duration: 48h

Elections go through the same wizard validation as the API, and their
total voters are counted from the members the eligibility rules admit.
Organizations already in the database are skipped. See
testdata/demo.yaml for a complete file.
*/
package seed
