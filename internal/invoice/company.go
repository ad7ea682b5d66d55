package invoice

// Company is the issuer printed on every invoice.
type Company struct {
	Name    string
	TaxID   string
	Address string
	Phone   string
	Email   string
}

func DefaultCompany() Company {
	return Company{
		Name:    "ForgeLine S. de R.L.",
		TaxID:   "0801-1234-567890",
		Address: "Peña Blanca, barrio al centro, Cortés, Honduras",
		Phone:   "+504 9583-4797",
		Email:   "info@forgeline.com",
	}
}
