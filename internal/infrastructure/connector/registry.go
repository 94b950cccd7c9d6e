package connector

// Registry bundles one adapter per provider, all sharing the same paging
// and transport options.
type Registry struct {
	Shopfront *ShopfrontAdapter
	MetaAds   *MetaAdsAdapter
	SearchAds *SearchAdsAdapter
	SitePulse *SitePulseAdapter
	Fulfilbay *FulfilbayAdapter
}

// NewRegistry creates adapters for every supported provider
func NewRegistry(opts Options) *Registry {
	return &Registry{
		Shopfront: NewShopfrontAdapter(opts),
		MetaAds:   NewMetaAdsAdapter(opts),
		SearchAds: NewSearchAdsAdapter(opts),
		SitePulse: NewSitePulseAdapter(opts),
		Fulfilbay: NewFulfilbayAdapter(opts),
	}
}
