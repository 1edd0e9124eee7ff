/*
Package weave defines the interfaces used throughout the ledger: storage,
messages, transactions, handlers and decorators. It also contains helpers to
work with the context, authentication conditions and addresses.

Look into this package to get a brief overview of the design decisions made
around interfaces and extension building blocks. Concrete implementations
live in the store, app and x/... packages.
*/
package weave
