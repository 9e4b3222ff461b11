package model

// Movie represents one tracked film as stored in the `movies` table.
// Optional columns are NULL in the database and empty strings here, so a
// freshly uploaded movie has empty Rating, Ranking and Review until the
// owner edits it.
//
// Fields:
//  ID          – primary key identifier, assigned on insert.
//  Title       – movie title (required).
//  Year        – four digit release year (required).
//  Description – short overview copied from the catalog.
//  Rating      – the owner's score as entered, e.g. "7.5".
//  Ranking     – position-derived rank, rewritten on every list render.
//  Review      – the owner's review text.
//  ImgURL      – poster image URL.
type Movie struct {
    ID          uint64 // movies.id
    Title       string // movies.title
    Year        int    // movies.year
    Description string // movies.description (nullable)
    Rating      string // movies.rating (nullable)
    Ranking     string // movies.ranking (nullable)
    Review      string // movies.review (nullable)
    ImgURL      string // movies.img_url (nullable)
}

// Reviewed reports whether the owner has already rated the movie.
func (m Movie) Reviewed() bool {
    return m.Rating != "" || m.Review != ""
}
