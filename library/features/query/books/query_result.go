package books

// BookView is the public representation of a book.
type BookView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Cover     string `json:"cover"`
	Inventory int    `json:"inventory"`
	DailyFee  string `json:"daily_fee"`
}

// Books is the result of the ListQuery.
type Books struct {
	Books []BookView `json:"books"`
	Count int        `json:"count"`
}
