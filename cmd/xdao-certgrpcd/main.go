package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"

	"google.golang.org/grpc"

	"xdao.co/certverify/config"
	"xdao.co/certverify/internal/setup"
	"xdao.co/certverify/verifygrpc"
)

func main() {
	fs := flag.NewFlagSet("xdao-certgrpcd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7878", "listen address")
	cfgPath := fs.String("config", "", "config document")
	_ = fs.Parse(os.Args[1:])

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		cfg, err = config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}

	engine, err := setup.Engine(cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	verifygrpc.RegisterVerifierServer(s, &verifygrpc.Server{Engine: engine})

	logger.Info("xdao-certgrpcd listening", "addr", lis.Addr().String(), "mode", cfg.Resolver.Mode)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
