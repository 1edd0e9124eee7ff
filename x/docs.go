/*
Package x contains the extensions of the ledger application.

Extensions implement common functionality (Handler, Decorator,
etc.) and are combined together to construct the application.

Sub-packages hold the proxy that owns every ledger storage space, the
fee token logic that runs behind it, signature verification and the
generic decorators.
*/
package x
