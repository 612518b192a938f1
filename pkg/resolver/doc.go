/*
Package resolver answers queries from the cache and fills misses through an
injected Exchanger, which owns the network.

Resolve first consults the cache, following fixed entries and cached
aliases. On a miss it queries for the name the aliases led to, validates
the response with the type's query processor and commits it. A response
truncated over UDP is retried once over TCP. Concurrent misses for the same
(name, type) wait on a single fetch.
*/
package resolver
