package domain

var Tables = []interface{}{
	// Catalog
	&Category{},
	&Tag{},
	&Product{},
	&ProductTag{},
	// Audit
	&CatalogOpLog{},
}
