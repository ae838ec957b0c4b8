// models/team.go
package models

// Team is one row of the teams spreadsheet.
// CSV tags match the spreadsheet headers exactly; columns not listed here are
// dropped when a table is decoded into Team values.
type Team struct {
	Name         string `csv:"Team" json:"Team"`
	Sport        string `csv:"Sports" json:"Sports"`
	Country      string `csv:"Country" json:"Country"`
	League       string `csv:"League" json:"League"`
	Twitter      string `csv:"Twitter" json:"Twitter"`
	Facebook     string `csv:"Facebook" json:"Facebook"`
	Instagram    string `csv:"Instagram" json:"Instagram"`
	OfficialPage string `csv:"Official Page" json:"Official Page"`
	OtherLinks   string `csv:"Other Links" json:"Other Links"`
}

// TeamColumns lists the spreadsheet headers in their canonical order.
var TeamColumns = []string{
	"Team", "Sports", "Country", "League",
	"Twitter", "Facebook", "Instagram", "Official Page", "Other Links",
}
