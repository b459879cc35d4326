package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/raywall/healthdata-loader/pkg/acquisition"
	"github.com/raywall/healthdata-loader/pkg/engine"
)

// Injetável para testes; nil usa o cliente HTTP padrão.
var probeDoer acquisition.HTTPDoer

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	filePtr := validateCmd.String("file", "", "Caminho do arquivo YAML ou S3/DynamoDB URI")

	envCmd := flag.NewFlagSet("env", flag.ExitOnError)
	envFilePtr := envCmd.String("file", "config.yaml", "Caminho do arquivo YAML ou S3/DynamoDB URI")

	if len(os.Args) < 2 {
		fmt.Println("Comandos esperados: validate, env")
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		if *filePtr == "" {
			fmt.Println("Erro: flag -file é obrigatória")
			os.Exit(1)
		}
		err = runValidate(os.Stdout, *filePtr, os.Getenv("OUTPUT_FORMAT") == "json")
	case "env":
		envCmd.Parse(os.Args[2:])
		err = runEnv(os.Stdout, *envFilePtr)
	default:
		fmt.Println("Comando desconhecido")
		os.Exit(1)
	}

	if err != nil {
		os.Exit(1) // Falha no CI
	}
}

func runValidate(w io.Writer, path string, asJSON bool) error {
	fmt.Fprintf(w, "🔍 Analisando configuração: %s ...\n", path)

	// 1. Load (Validação Estrutural)
	cfg, err := engine.NewUniversalLoader().Load(context.Background(), path)
	if err != nil {
		fmt.Fprintf(w, "❌ Erro de Carregamento/Estrutura:\n%v\n", err)
		return err
	}

	// 2. Analyze (Validação Lógica/Semântica)
	report, err := engine.Analyze(cfg)
	if err != nil {
		fmt.Fprintf(w, "❌ Erro interno do analisador: %v\n", err)
		return err
	}

	if asJSON {
		out, _ := json.Marshal(report)
		fmt.Fprintln(w, string(out))
	}

	if !report.Valid {
		fmt.Fprintln(w, "❌ A configuração contém erros lógicos:")
		for _, e := range report.Errors {
			fmt.Fprintf(w, " - %s\n", e)
		}
		return fmt.Errorf("configuração inválida: %d erro(s)", len(report.Errors))
	}

	for _, warn := range report.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", warn)
	}
	if !asJSON {
		fmt.Fprintln(w, "✅ Configuração Válida e Pronta para Deploy!")
	}
	return nil
}

// runEnv imprime o relatório de ambiente (API, compliance, cache) em JSON.
func runEnv(w io.Writer, path string) error {
	ctx := context.Background()
	cfg, err := engine.NewUniversalLoader().Load(ctx, path)
	if err != nil {
		fmt.Fprintf(w, "❌ Erro de Carregamento/Estrutura:\n%v\n", err)
		return err
	}

	svc, err := engine.NewService(cfg, path, engine.Deps{ProbeDoer: probeDoer})
	if err != nil {
		fmt.Fprintf(w, "❌ Erro ao montar serviço:\n%v\n", err)
		return err
	}
	defer svc.Shutdown(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(svc.ValidateEnvironment(ctx))
}
