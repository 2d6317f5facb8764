package entities

// LabelChange is one row of the FDA safety-related labeling changes export.
// DrugID is not a CSV column: it is extracted from the Link URL and names the
// downloaded artifact. The fields beyond ApplicationID and URL are carried
// along for the downstream extraction pipeline and may be empty when the
// export omits them.
type LabelChange struct {
	DrugID           int    `json:"drugId"`
	DrugName         string `json:"drugName"`
	ActiveIngredient string `json:"activeIngredient"`
	ApplicationID    string `json:"applicationId"`
	ApplicationType  string `json:"applicationType"`
	SupplementDate   string `json:"supplementDate"`
	DatabaseUpdated  string `json:"databaseUpdated"`
	URL              string `json:"url"`
}
