// Package source fetches and parses the vaccinations-by-manufacturer CSV.
//
// Default endpoint:
//   - https://raw.githubusercontent.com/owid/covid-19-data/master/public/data/vaccinations/vaccinations-by-manufacturer.csv
//
// Required columns: location, date (YYYY-MM-DD), vaccine, total_vaccinations.
// Column order is free and extra columns are ignored.
package source
