// Copyright 2025 The kwserve Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the kwserve keyword recommendation CLI and server.

kwserve reads a training document, finds every call shaped like
prefix.function(args, kw=value, ...), and learns how often each keyword
argument accompanies each function. Other documents are then compared
against that model: for every function they call, kwserve prints the
keywords the document used next to the keywords the training set used
most often.

# Usage

Train and analyze one document, prompting for anything missing:

	kwserve train.py doc.py
	kwserve train.py
	kwserve

Analyze many documents in parallel, as text, JSON lines or msgpack:

	kwserve analyze train.py a.py b.py c.py
	kwserve analyze --format json train.py src/*.py

Print what was learned from a training document:

	kwserve train train.py

Re-analyze documents whenever they are saved:

	kwserve watch train.py notebook.py

Serve the model to other processes over msgpack IPC (stdin/stdout) and,
optionally, an HTTP JSON API:

	kwserve serve train.py
	kwserve serve train.py --http :8080 --ipc=false

# Output

The text report mirrors the classic layout:

	You used function plot with keywords and frequency:
	markersize  1.000
	We recommend these keywords with frequency:
	markersize  0.667
	linewidth  0.333

"None!" stands for an empty list: no keywords used, or nothing to
recommend because the training document never called the function.

# Configuration

Runtime configuration lives in a TOML file, created with defaults on first
run under the user config directory (~/.config/kwserve/config.toml):

	[extract]
	prefix = "plt"
	detect_prefix = false
	import_module = "matplotlib.pyplot"
	require_parens = false
	trim_parens = false

	[report]
	limit = 0
	format = "text"
	precision = 3

	[analysis]
	workers = 4

	[server]
	http_addr = ":8080"
	cache_size = 16

KWSERVE_PREFIX, KWSERVE_FORMAT and KWSERVE_HTTP_ADDR override the file and
may be set in a .env file in the working directory. Flags override both.

With detect_prefix (or --detect-prefix) the prefix is taken from the
document's own import, e.g. `import matplotlib.pyplot as mp` makes "mp"
the prefix for that document.

# Flags

	--config string      config file path
	-d, --debug          debug logging with timestamps
	--log-level string   log level (debug, info, warn, error)
	--prefix string      call prefix
	--detect-prefix      detect the prefix from import statements
	--require-parens     ignore prefix.name occurrences without "("
	--trim-parens        drop "(" and ")" around the argument text
	--limit int          max keywords per list (0 = all)
	--format string      text, json or msgpack

Logs always go to stderr; stdout carries only reports and IPC frames.
*/
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const (
	Version = "0.3.0"
	AppName = "kwserve"
	gh      = "https://github.com/bastiangx/kwserve"
)

// sigHandler exits on a second interrupt; the first one cancels the
// command's context so servers and watchers can shut down.
func sigHandler(cancel func()) {
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		cancel()
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
