package kroger

// tokenResponse is the OAuth2 client-credentials grant response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// searchResponse is the envelope of GET /v1/products.
type searchResponse struct {
	Data []krogerProduct `json:"data"`
	Meta struct {
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	} `json:"meta"`
}

// krogerProduct is one catalog product as the Kroger API returns it.
type krogerProduct struct {
	ProductID   string        `json:"productId"`
	UPC         string        `json:"upc"`
	Description string        `json:"description"`
	Brand       string        `json:"brand"`
	Items       []krogerItem  `json:"items"`
	Images      []krogerImage `json:"images"`
}

type krogerItem struct {
	ItemID string      `json:"itemId"`
	Size   string      `json:"size"`
	Price  krogerPrice `json:"price"`
}

type krogerPrice struct {
	Regular float64 `json:"regular"`
	Promo   float64 `json:"promo"`
}

type krogerImage struct {
	Perspective string `json:"perspective"`
	Sizes       []struct {
		Size string `json:"size"`
		URL  string `json:"url"`
	} `json:"sizes"`
}
