package downloader

import "github.com/farxc/despesas-dw/internal/transparency/types"

// PeriodURL is one monthly archive to fetch.
type PeriodURL struct {
	Period types.Period
	URL    string
}

// PeriodURLs lists every month of [startYear, endYear], year-major, with the
// YYYYMM token appended to baseURL.
func PeriodURLs(baseURL string, startYear, endYear int) []PeriodURL {
	if endYear < startYear {
		return nil
	}

	urls := make([]PeriodURL, 0, 12*(endYear-startYear+1))
	for year := startYear; year <= endYear; year++ {
		for month := 1; month <= 12; month++ {
			p := types.Period{Year: year, Month: month}
			urls = append(urls, PeriodURL{Period: p, URL: baseURL + p.Token()})
		}
	}
	return urls
}
