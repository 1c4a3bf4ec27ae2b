package database

// Friend is a stored friend record. Nullable columns are pointers so they
// serialize as JSON null instead of being omitted.
type Friend struct {
	ID                    int64   `db:"id"                     json:"id"`
	Name                  string  `db:"name"                   json:"name"`
	Profession            string  `db:"profession"             json:"profession"`
	ProfessionDescription *string `db:"profession_description" json:"profession_description"`
	PhotoURL              *string `db:"photo_url"              json:"photo_url"`
}
