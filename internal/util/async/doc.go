// Package async provides utilities for parallel task execution with
// error collection.
//
// [RunParallel] executes operations concurrently and joins every error. It
// is used for work that never touches the cluster hosts, such as uploading
// run artifacts to the archive.
package async
