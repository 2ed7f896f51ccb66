// Package testing provides fakes and helpers shared by cephrig tests.
//
//   - FakeRemote: a scripted remote.Remote that records every command
//   - NewHost / NewCluster: build cluster hosts backed by fake remotes
//   - ConfigBuilder: fluent builder for task configurations
//
// Usage:
//
//	mon := testing.NewFakeRemote("host-a").
//	    On("ceph health", "HEALTH_OK\n")
//	c := testing.NewCluster(testing.NewHost(mon, "mon.a"))
package testing
