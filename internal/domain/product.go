package domain

// Product is the fully decoded remote product value.
// Decoding from the network payload happens outside this module.
type Product struct {
	ID          int64
	Title       string
	Price       Money
	Description string
	Category    Category
	Images      []string
}

type Category struct {
	ID    int64
	Name  string
	Image string
}

func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
