/*
Package types defines the data shared between the probe packages.

Target:
  - The single URL a run hits
  - Credential cookie (name defaults to "accessToken")
  - Optional static headers
  - Optional client TLS settings

The token is excluded from JSON and YAML encoding so printed or copied
configuration never leaks it.
*/
package types
