// Command probe prints the options flow for one ticker, either computed
// in-process or fetched from a running control server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"options-flow/src/analysis"
	"options-flow/src/config"
	datasource "options-flow/src/data_source"
	"options-flow/src/data_source/yahoo"
	"options-flow/src/grpc_control"
	"options-flow/src/logger"
	"options-flow/src/models"
	"options-flow/src/network"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

func main() {
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	ticker := flag.String("ticker", "", "underlying symbol, e.g. AAPL")
	expiration := flag.Int64("expiration", 0, "expiration as unix seconds (0 = nearest)")
	addr := flag.String("addr", "", "control server address; computes in-process when empty")
	flag.Parse()

	req := models.MFlowRequest{Ticker: *ticker}
	if *expiration > 0 {
		req.Expiration = expiration
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var (
		data *models.MFlowData
		err  error
	)
	if *addr != "" {
		data, err = fetchRemote(ctx, *addr, req)
	} else {
		data, err = fetchLocal(ctx, *configPath, req)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe: %v\n", err)
		os.Exit(1)
	}
	printFlow(os.Stdout, data)
}

// -----------------------------------------------------------------------------

func fetchLocal(ctx context.Context, configPath string, req models.MFlowRequest) (*models.MFlowData, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		return nil, err
	}
	conf, err := config.NewConfig(configPath)
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(conf, "probe")
	netMgr := network.NewAsyncNetworkManager(conf.MConfig, log.Named("NetworkManager"))
	cache := yahoo.NewCrumbAuthCache(conf.Provider, netMgr, log.Named("CrumbAuthCache"))
	source := yahoo.NewOptionsChainSource(conf.Provider, netMgr, cache, log.Named("YahooOptions"))
	flow := datasource.NewFlowManager(source, analysis.NewAnalysisFacade(conf.MConfig, log.Named("Analysis")), cache, log)
	return flow.GetFlow(ctx, req)
}

// -----------------------------------------------------------------------------

func fetchRemote(ctx context.Context, addr string, req models.MFlowRequest) (*models.MFlowData, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	fields := map[string]interface{}{"ticker": req.Ticker}
	if req.Expiration != nil {
		fields["expiration"] = *req.Expiration
	}
	in, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}

	out, err := grpc_control.NewControlClient(conn).GetFlow(ctx, in)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(out.AsMap())
	if err != nil {
		return nil, err
	}
	var data models.MFlowData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// -----------------------------------------------------------------------------

func printFlow(w io.Writer, d *models.MFlowData) {
	s := d.Summary
	fmt.Fprintf(w, "%s  %.2f (%+.2f%%)  expiry %s\n\n", d.Ticker, d.Price, d.Change, d.Expiry)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "volume\t%.0f\tcall/put\t%.0f / %.0f\n", s.TotalVolume, s.TotalCallVol, s.TotalPutVol)
	fmt.Fprintf(tw, "call %%\t%.0f\tput %%\t%.0f\n", s.CallPct, s.PutPct)
	fmt.Fprintf(tw, "p/c ratio\t%.2f\tsentiment\t%s\n", s.PutCallRatio, s.Sentiment)
	fmt.Fprintf(tw, "vol/OI\t%.1f\topen interest\t%.0f / %.0f\n", s.VolumeAvgRatio, s.TotalCallOI, s.TotalPutOI)
	fmt.Fprintf(tw, "max pain\t%.2f\thighest OI\tC %.2f / P %.2f\n",
		d.KeyLevels.MaxPainStrike, d.KeyLevels.HighestOICallStrike, d.KeyLevels.HighestOIPutStrike)
	tw.Flush()

	if len(d.NotableTrades) == 0 {
		fmt.Fprintln(w, "\nno traded contracts")
		return
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "strike\tside\texpiry\tvolume\tOI\tlast\tiv%\tpremium\ttype\t")
	for _, t := range d.NotableTrades {
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%.0f\t%.0f\t%.2f\t%.0f\t%.0f\t%s\t\n",
			t.Strike, t.Side, t.ExpiryLabel, t.Volume, t.OpenInterest, t.LastPrice, t.IVPct, t.Premium, t.TradeType)
	}
	tw.Flush()
}
