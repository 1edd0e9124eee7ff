/*
Package feetoken implements a fungible token that charges a percentage fee
on every transfer.

The token is a stateless logic module executed through a proxy. All of its
state lives in the storage space handed to it by the proxy, under stable
named keys. A storage space is initialized exactly once, which mints the
whole supply to the owner. The owner can change the fee configuration,
pause transfers and authorize upgrades of the proxy.
*/
package feetoken
