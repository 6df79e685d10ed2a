package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
)

// params 可重复的 -param key=value
type params map[string]string

func (p params) String() string {
	return fmt.Sprint(map[string]string(p))
}

func (p params) Set(v string) error {
	k, val, ok := strings.Cut(v, "=")
	if !ok || k == "" {
		return fmt.Errorf("want key=value, got %q", v)
	}
	p[k] = val
	return nil
}

func main() {
	p := params{}
	var (
		serverAddr  string
		storletName string
		op          string
		objectID    string
		file        string
		stats       bool
		random      int
	)
	flag.StringVar(&serverAddr, "addr", "localhost:8001", "Connect to which storlet node")
	flag.StringVar(&storletName, "storlet", "ssdcache", "Storlet name")
	flag.StringVar(&op, "op", "GET", "Operation: PUT or GET")
	flag.StringVar(&objectID, "id", "", "Object ID, e.g. container/object")
	flag.StringVar(&file, "file", "", "PUT: file to upload; GET: file to write (default stdout)")
	flag.BoolVar(&stats, "stats", false, "Print the storlet dump of the node")
	flag.IntVar(&random, "random", 0, "Issue N random PUT/GET invocations and print the dump")
	flag.Var(p, "param", "Storlet parameter key=value, repeatable, e.g. -param 1-stage='filter-contains|error'")
	flag.Parse()

	// 1. 连接到 gRPC 服务器，使用不安全的连接（无 TLS）
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fail("connect %s: %v", serverAddr, err)
	}
	defer conn.Close()

	client := pb.NewStorletClient(conn)

	switch {
	case random > 0:
		runRandom(client, storletName, random)
		printStats(client, storletName)
	case stats:
		printStats(client, storletName)
	default:
		if objectID == "" {
			fail("-id is required")
		}
		invoke(client, storletName, op, objectID, file, p)
	}
}

func invoke(client pb.StorletClient, storletName, op, objectID, file string, p params) {
	req := &pb.InvokeRequest{Storlet: storletName, Op: op, ObjectId: objectID, Params: p}
	if op == "PUT" {
		data, err := readInput(file)
		if err != nil {
			fail("read input: %v", err)
		}
		req.Data = data
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	resp, err := client.Invoke(ctx, req)
	elapsed := time.Since(start)
	if err != nil {
		fail("invoke: %v", err)
	}

	if op == "GET" {
		if file == "" {
			_, _ = os.Stdout.Write(resp.GetData())
		} else if err := os.WriteFile(file, resp.GetData(), 0o644); err != nil {
			fail("write %s: %v", file, err)
		}
	}

	fmt.Fprintf(os.Stderr, "--------------------------------\n")
	fmt.Fprintf(os.Stderr, "Op:      %s %s\n", resp.Op, resp.ObjectId)
	fmt.Fprintf(os.Stderr, "Node:    %s\n", resp.Node)
	fmt.Fprintf(os.Stderr, "Hit:     %v\n", resp.Hit)
	fmt.Fprintf(os.Stderr, "Bytes:   %d\n", resp.Bytes)
	fmt.Fprintf(os.Stderr, "Evicted: %v\n", resp.GetEvicted())
	fmt.Fprintf(os.Stderr, "Time:    %v\n", elapsed)
	fmt.Fprintf(os.Stderr, "--------------------------------\n")
}

func readInput(file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(file)
}

// runRandom 随机发起 PUT/GET：一半概率写新对象，否则重写或读取已有对象
func runRandom(client pb.StorletClient, storletName string, n int) {
	var ids []string
	var failed int
	for i := 0; i < n; i++ {
		req := &pb.InvokeRequest{Storlet: storletName}
		switch {
		case len(ids) == 0 || rand.Intn(2) == 0:
			id := "random/" + uuid.NewString()
			ids = append(ids, id)
			req.Op, req.ObjectId = "PUT", id
			req.Data = make([]byte, 1+rand.Intn(64<<10))
		case rand.Intn(2) == 0:
			req.Op, req.ObjectId = "PUT", ids[rand.Intn(len(ids))]
			req.Data = make([]byte, 1+rand.Intn(64<<10))
		default:
			req.Op, req.ObjectId = "GET", ids[rand.Intn(len(ids))]
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if _, err := client.Invoke(ctx, req); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "%s %s: %v\n", req.Op, req.ObjectId, err)
		}
		cancel()
	}
	fmt.Printf("Invocations: %d, failed: %d, distinct objects: %d\n", n, failed, len(ids))
}

func printStats(client pb.StorletClient, storletName string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := client.Stats(ctx, &pb.StatsRequest{Storlet: storletName})
	if err != nil {
		fail("stats: %v", err)
	}
	fmt.Printf("[%s @ %s]\n%s\n", resp.Storlet, resp.Node, resp.Dump)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
