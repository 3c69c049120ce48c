// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package catalog performs petition, support tier and supporter mutations.

Each operation opens one transaction, asks package guard for a Decision on
that transaction and writes only when the decision allows it. A denied
decision is returned with a nil error; the caller maps its verdict to a
response. A unique-constraint race lost to a concurrent writer is reported as
Conflict, the same verdict the guard would have given.
*/
package catalog
