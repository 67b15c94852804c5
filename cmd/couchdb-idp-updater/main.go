// Command couchdb-idp-updater keeps CouchDB cluster jwt_keys configuration
// in sync with the keys published by a set of configured OIDC identity
// providers.
package main

import (
	"github.com/beyonddemise/couchdb-idp-updater/cmd/couchdb-idp-updater/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		app.ExitOnError(err)
	}
}
