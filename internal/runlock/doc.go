// Package runlock keeps two comictag processes from rewriting archives at
// the same time. Commands that modify archives hold the lock for their whole
// run; read-only commands never take it.
package runlock
