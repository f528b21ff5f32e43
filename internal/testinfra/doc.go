// Chronographus - GitHub Events Analytics and Timeline Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

// Package testinfra provides shared infrastructure for integration tests.
//
// The helpers here stand up the three external surfaces the pipeline
// touches, all in-process so no Docker or network access is needed:
//
//   - MockFeedServer: an httptest server speaking the GitHub public
//     events protocol (ETag conditional requests, 304 responses,
//     x-poll-interval, primary rate limit headers)
//   - StartEmbeddedStream: an embedded NATS server with JetStream on a
//     random port, cleaned up with the test
//   - OpenTestStore: an in-memory Badger database, cleaned up with the
//     test
//
// # Mock Feed Server
//
// The MockFeedServer captures every request it receives and lets tests
// change the feed content between polls:
//
//	func TestPollerAgainstFeed(t *testing.T) {
//	    srv := testinfra.NewMockFeedServer(t)
//	    srv.SetEvents([]models.RawEvent{
//	        testinfra.PullRequestOpenedEvent("100", "octo/spoon", time.Now()),
//	    })
//
//	    client := feed.NewClient(&config.PollerConfig{
//	        FeedURL: srv.URL(),
//	        ...
//	    })
//
//	    // First poll returns the page; the second with the returned
//	    // ETag answers 304 until PushEvents adds new content.
//	}
//
// # Build Tag
//
// All helpers except this doc comment are behind the integration build
// tag. Run them with:
//
//	go test -tags integration ./...
package testinfra
