// Package data embeds the demo package loaded by "manager populate".
package data

import (
	_ "embed"
)

//go:embed fixtures/datapackage.json
var FixtureDescriptor []byte

//go:embed fixtures/README.md
var FixtureReadme string

//go:embed fixtures/data/gdp.csv
var FixtureGDP []byte

// FixtureGDPPath is where the descriptor expects the resource.
const FixtureGDPPath = "gdp.csv"
