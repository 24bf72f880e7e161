package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/foomo/domfinder"
	"github.com/foomo/domfinder/config"
	"github.com/foomo/domfinder/vo"
)

func must(comment string, err error) {
	if err != nil {
		fmt.Println(comment, err)
		os.Exit(1)
	}
}

func main() {
	flagDump := flag.Bool("dump", false, "dump the loaded schema")
	flagServe := flag.String("serve", "", "run as an extraction service on the given address")
	flagAgent := flag.String("agent", domfinder.DefaultAgent, "user agent for fetching documents")
	flag.Parse()

	if len(flag.Args()) < 1 {
		fmt.Println("domfinder - extract structured data from html documents with a schema")
		fmt.Println("usage:", os.Args[0], "path/to/schema.yaml", "http://server.com/doc-to-extract")
		fmt.Println("      ", os.Args[0], "-serve :8080", "path/to/schema.yaml")
		os.Exit(1)
	}

	conf, errConf := config.Get(flag.Arg(0))
	must("schema error:", errConf)
	if *flagDump {
		spew.Dump(conf)
	}

	finder, errFinder := domfinder.NewFinder(conf)
	must("could not compile schema:", errFinder)

	if *flagServe != "" {
		mux := http.NewServeMux()
		mux.Handle("/extract", domfinder.NewService(finder, *flagAgent))
		mux.Handle("/metrics", promhttp.Handler())
		fmt.Println("serving extraction for schema", conf.Name, "on", *flagServe)
		log.Fatal(http.ListenAndServe(*flagServe, mux))
	}

	if len(flag.Args()) != 2 {
		fmt.Println("usage:", os.Args[0], "path/to/schema.yaml", "http://server.com/doc-to-extract")
		os.Exit(1)
	}
	target := flag.Arg(1)
	u, errParse := url.Parse(target)
	must("can not parse target url:", errParse)

	var value vo.Value
	if u.Scheme == "" || u.Scheme == "file" {
		filename := target
		if u.Scheme == "file" {
			filename = u.Path
		}
		htmlBytes, errRead := os.ReadFile(filename)
		must("can not read document:", errRead)
		parsed, errExtract := finder.Parse(string(htmlBytes))
		must("could not extract:", errExtract)
		value = parsed
	} else {
		doc, errFetch := domfinder.FetchDocument(target, *flagAgent)
		must("could not fetch document:", errFetch)
		value = finder.ParseDocument(doc)
	}

	out, errMarshal := json.MarshalIndent(value, "", "	")
	must("could not serialize result:", errMarshal)
	fmt.Println(string(out))
}
