package domfinder

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/temoto/robotstxt"
)

const DefaultAgent = "domfinder"

func newFetchClient() *http.Client {
	return &http.Client{
		Timeout: time.Second * 10,
		Transport: &http.Transport{
			Dial: (&net.Dialer{
				Timeout: 5 * time.Second,
			}).Dial,
			TLSHandshakeTimeout: 5 * time.Second,
		},
	}
}

func getRobotsData(client *http.Client, baseURL string) (data *robotstxt.RobotsData, err error) {
	resp, errGet := client.Get(baseURL + "/robots.txt")
	if errGet != nil {
		return nil, errGet
	}
	data, errFromResponse := robotstxt.FromResponse(resp)
	resp.Body.Close()
	if errFromResponse != nil {
		return nil, errFromResponse
	}
	return data, nil
}

// FetchDocument gets a html document for extraction. The target's
// robots.txt is honored for the given agent, missing or broken
// robots.txt allows the fetch.
func FetchDocument(targetURL string, agent string) (doc *goquery.Document, err error) {
	if agent == "" {
		agent = DefaultAgent
	}
	u, errParse := url.Parse(targetURL)
	if errParse != nil {
		return nil, errParse
	}
	client := newFetchClient()

	robotsData, errRobots := getRobotsData(client, u.Scheme+"://"+u.Host)
	if errRobots == nil && !robotsData.TestAgent(u.Path, agent) {
		return nil, errors.New("blocked by robots.txt: " + targetURL)
	}

	req, errRequest := http.NewRequest("GET", targetURL, nil)
	if errRequest != nil {
		return nil, errRequest
	}
	req.Header.Set("User-Agent", agent)

	resp, errGet := client.Do(req)
	if errGet != nil {
		return nil, errGet
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprint("unexpected response code: ", resp.StatusCode, ", status:", resp.Status))
	}
	contentType := resp.Header.Get("Content-type")
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, errors.New("unexpected content type: " + contentType)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}
