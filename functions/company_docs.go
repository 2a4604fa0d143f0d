package functions

var docs string = `
my company name is NabooPay, we are specialized in payment processing
for e-commerce websites and online services. We offer competitive rates,
secure transactions, and seamless integration with popular platforms.
`

// GetCompanyInformationsDocs returns the company documentation blob.
func GetCompanyInformationsDocs() string {
	return docs
}

// Default returns a registry with the built-in functions registered.
func Default() *Registry {
	r := NewRegistry()
	r.Register("GetCompanyInformationsDocs", "Get All the information of the company",
		func(args map[string]any) map[string]any {
			return map[string]any{"output": GetCompanyInformationsDocs()}
		})
	return r
}
