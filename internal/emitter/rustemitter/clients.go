package rustemitter

import (
	"fmt"
	"strings"

	"github.com/openclientgen/openapi2rust/internal/naming"
	"github.com/openclientgen/openapi2rust/internal/spec"
)

// generateClients renders src/clients.rs: the default reqwest config, one
// client constructor per documented server, and the ApiClient type. These
// are fixed templates; only the server list varies.
func generateClients(servers []*spec.Server) (string, error) {
	var b strings.Builder

	b.WriteString("use anyhow::{Context as _, Result};\n")
	b.WriteString("use reqwest::{Client, header, Method, RequestBuilder, Url};\n")
	b.WriteString("use crate::builder::ApiClientBuilder;\n")
	b.WriteString("use std::time::Duration;\n\n")

	writeConfigFn(&b)

	for _, server := range servers {
		if err := writeClientFn(&b, server); err != nil {
			return "", err
		}
	}

	writeClientType(&b)

	return b.String(), nil
}

func writeConfigFn(b *strings.Builder) {
	b.WriteString("pub fn default_config(\n")
	b.WriteString("    timeout: Option<Duration>,\n")
	b.WriteString("    user_agent: Option<&str>,\n")
	b.WriteString("    default_headers: Option<header::HeaderMap>,\n")
	b.WriteString(") -> Result<Client> {\n")
	b.WriteString("    let mut headers = default_headers.unwrap_or_default();\n")
	b.WriteString("    headers.insert(header::USER_AGENT, header::HeaderValue::from_str(user_agent.unwrap_or(\"Rust API client\"))?);\n\n")
	b.WriteString("    Ok(Client::builder()\n")
	b.WriteString("        .connect_timeout(timeout.unwrap_or_else(|| Duration::from_secs(10)))\n")
	b.WriteString("        .default_headers(headers)\n")
	b.WriteString("        .build()?)\n")
	b.WriteString("}\n\n")
}

func writeClientFn(b *strings.Builder, server *spec.Server) error {
	if server.Description == "" {
		return fmt.Errorf("server %q does not have a description", server.URL)
	}
	// "Production servers" becomes production_client
	name := strings.Replace(server.Description, "servers", "", 1)

	fmt.Fprintf(b, "pub fn %s_client(", naming.ToSnake(name))

	variableNames := server.Variables.Keys()
	for i, varName := range variableNames {
		fmt.Fprintf(b, "\n    %s: Option<&str>,", naming.ToSnake(varName))
		if i == len(variableNames)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString(") -> Result<ApiClient> {\n")

	if len(variableNames) > 0 {
		defaults := make([]string, 0, len(variableNames))
		formatArgs := make([]string, 0, len(variableNames))
		for _, varName := range variableNames {
			variable, _ := server.Variables.Get(varName)
			snake := naming.ToSnake(varName)
			defaults = append(defaults, fmt.Sprintf("let %s = %s.unwrap_or(%q);", snake, snake, variable.Default))
			formatArgs = append(formatArgs, fmt.Sprintf("%s = %s", snake, snake))
		}
		fmt.Fprintf(b, "    %s\n", strings.Join(defaults, "\n    "))
		fmt.Fprintf(b, "    let url = &format!(%q, %s);", server.URL, strings.Join(formatArgs, ", "))
	} else {
		fmt.Fprintf(b, "    let url = %q;", server.URL)
	}
	b.WriteString("\n\n")

	b.WriteString("    let config = default_config(\n")
	b.WriteString("        Some(Duration::from_secs(30)),\n")
	b.WriteString("        None,\n")
	b.WriteString("        None,\n")
	b.WriteString("    )?;\n\n")

	b.WriteString("    Ok(ApiClient {\n")
	b.WriteString("        client: config,\n")
	b.WriteString("        server: Url::parse(url).context(\"Failed to parse base url from Open API document\")?,\n")
	b.WriteString("    })\n")
	b.WriteString("}\n\n")

	return nil
}

func writeClientType(b *strings.Builder) {
	b.WriteString("#[derive(Debug)]\n")
	b.WriteString("pub struct ApiClient {\n")
	b.WriteString("    pub client: Client,\n")
	b.WriteString("    pub server: Url,\n")
	b.WriteString("}\n\n")

	b.WriteString("impl ApiClient {\n")
	b.WriteString("    pub fn request(&self, method: Method, endpoint: &str) -> Result<RequestBuilder> {\n")
	b.WriteString("        let url = self.server.join(endpoint)?;\n\n")
	b.WriteString("        Ok(self.client.request(method, url))\n")
	b.WriteString("    }\n\n")
	b.WriteString("    pub fn builder(base_url: Url) -> ApiClientBuilder {\n")
	b.WriteString("        ApiClientBuilder::new(base_url)\n")
	b.WriteString("    }\n")
	b.WriteString("}\n")
}

// builderSource is the fixed src/builder.rs unit.
const builderSource = `use crate::clients::ApiClient;
use anyhow::Result;
use reqwest::{header, Url};
use std::time::Duration;

#[derive(Debug)]
pub struct ApiClientBuilder {
    // Some client specific values
    base_url: Url,
    timeout: Option<Duration>,

    // These values will be mapped to header values
    user_agent: Option<String>,
    bearer_token: Option<String>,
}

impl ApiClientBuilder {
    pub fn new(base_url: Url) -> Self {
        Self {
            base_url,
            timeout: None,
            user_agent: None,
            bearer_token: None,
        }
    }

    /// Override the base_url for the ApiClient.
    pub fn base_url(mut self, base_url: Url) -> Self {
        self.base_url = base_url;
        self
    }

    /// Change the timeout for the ApiClient.
    pub fn timeout(mut self, timeout: Option<Duration>) -> Self {
        self.timeout = timeout;
        self
    }

    /// Override the user agent for the ApiClient.
    pub fn user_agent(mut self, user_agent: Option<impl Into<String>>) -> Self {
        self.user_agent = user_agent.map(|agent| agent.into());
        self
    }

    /// Set an authentication token for the ApiClient.
    pub fn bearer_token(mut self, bearer_token: Option<impl Into<String>>) -> Self {
        self.bearer_token = bearer_token.map(|token| token.into());
        self
    }

    pub fn build_client(&self) -> Result<reqwest::Client> {
        let mut headers = header::HeaderMap::new();

        headers.insert(
            header::USER_AGENT,
            header::HeaderValue::from_str(
                self.user_agent
                    .as_deref()
                    .unwrap_or("Rust API client"),
            )?,
        );

        if let Some(bearer) = &self.bearer_token {
            headers.insert(
                header::AUTHORIZATION,
                header::HeaderValue::from_str(
                    &format!("Bearer {}", bearer)
                )?,
            );
        }

        let client = reqwest::Client::builder()
            .connect_timeout(self.timeout.unwrap_or_else(|| Duration::from_secs(5)))
            .default_headers(headers)
            .build()?;

        Ok(client)
    }

    /// Build the ApiClient.
    pub fn build(self) -> Result<ApiClient> {
        let client = self.build_client()?;
        let server = self.base_url;
        Ok(ApiClient { client, server })
    }
}
`
